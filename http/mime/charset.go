package mime

type Charset = string

// UTF8 is the only charset responses are ever labelled with.
const UTF8 Charset = "UTF-8"
