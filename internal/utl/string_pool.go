package utl

// StringId identifies a pooled string. Two names are equal exactly
// when their ids are equal.
type StringId uint32

// StringPool is an insertion-ordered bijection between strings and
// dense 32-bit ids. It only accretes; pooled strings live for the
// lifetime of the process.
type StringPool struct {
	strings []string
	ids     map[string]StringId
}

func NewStringPool() *StringPool {
	return &StringPool{ids: make(map[string]StringId)}
}

// Intern returns the id for content, allocating one on first sight.
func (p *StringPool) Intern(content string) StringId {
	if id, ok := p.ids[content]; ok {
		return id
	}
	id := StringId(uint32(len(p.strings)))
	p.strings = append(p.strings, content)
	p.ids[content] = id
	return id
}

// Get returns the content behind id.
func (p *StringPool) Get(id StringId) string {
	return p.strings[uint32(id)]
}

func (p *StringPool) Len() int {
	return len(p.strings)
}
