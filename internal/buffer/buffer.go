package buffer

// Buffer accumulates a byte sequence up to a fixed limit. Initially it holds only
// initialSize bytes of capacity and grows on demand, but never past maxSize.
type Buffer struct {
	memory  []byte
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data, checking whether the new amount of bytes doesn't exceed the
// limit, otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// AppendByte writes a single byte, checking whether it won't exceed the limit.
func (b *Buffer) AppendByte(c byte) (ok bool) {
	if len(b.memory)+1 > b.maxSize {
		return false
	}

	b.memory = append(b.memory, c)
	return true
}

// Trunc drops the last n bytes.
func (b *Buffer) Trunc(n int) {
	if n > len(b.memory) {
		n = len(b.memory)
	}

	b.memory = b.memory[:len(b.memory)-n]
}

// Last returns the last byte or 0 if the buffer is empty.
func (b *Buffer) Last() byte {
	if len(b.memory) == 0 {
		return 0
	}

	return b.memory[len(b.memory)-1]
}

// Bytes returns the accumulated data. The slice stays valid until the next Clear.
func (b *Buffer) Bytes() []byte {
	return b.memory
}

func (b *Buffer) Len() int {
	return len(b.memory)
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}
