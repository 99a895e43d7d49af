package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

var errVectorLength = errors.New("vector length exceeds remaining data")

// Hand-written MUS serializers for the persisted types. The layout is
// fixed: fields are encoded in declaration order, integers as varints,
// strings with a varint length prefix, timestamps as unix microseconds.
var (
	IDMUS             = idSer{}
	KnowledgeEntryMUS = knowledgeEntrySer{}
	VectorMUS         = vectorSer{}
)

var (
	_ mus.Serializer[ID]             = idSer{}
	_ mus.Serializer[KnowledgeEntry] = knowledgeEntrySer{}
	_ mus.Serializer[[]float32]      = vectorSer{}
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type vectorSer struct{}

func (vectorSer) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorSer) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	// Every element takes at least one byte, so a length beyond the
	// remaining buffer means corrupt data, not a large vector.
	if length > uint64(len(bs)-n) {
		return nil, n, errVectorLength
	}
	v = make([]float32, 0, length)
	var n1 int
	for i := uint64(0); i < length; i++ {
		var f float32
		if f, n1, err = varint.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
		v = append(v, f)
	}
	return v, n, nil
}

func (vectorSer) Size(v []float32) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return size
}

func (vectorSer) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	var n1 int
	for i := uint64(0); i < length; i++ {
		if n1, err = varint.Float32.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

type knowledgeEntrySer struct{}

func (knowledgeEntrySer) Marshal(e KnowledgeEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Question, bs[n:])
	n += ord.String.Marshal(e.NormalizedQuestion, bs[n:])
	n += ord.String.Marshal(e.Answer, bs[n:])
	n += ord.String.Marshal(e.Domain, bs[n:])
	n += varint.Float64.Marshal(e.Confidence, bs[n:])
	n += varint.Int64.Marshal(e.UsageCount, bs[n:])
	n += varint.Int64.Marshal(e.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(e.UpdatedAt.UnixMicro(), bs[n:])
	n += ord.String.Marshal(e.ValidationStatus, bs[n:])
	return n
}

func (knowledgeEntrySer) Unmarshal(bs []byte) (e KnowledgeEntry, n int, err error) {
	var n1 int
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	if e.Question, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.NormalizedQuestion, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Answer, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Domain, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.UsageCount, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.CreatedAt = time.UnixMicro(micros).UTC()
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.UpdatedAt = time.UnixMicro(micros).UTC()
	if e.ValidationStatus, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	return e, n, nil
}

func (knowledgeEntrySer) Size(e KnowledgeEntry) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Question)
	size += ord.String.Size(e.NormalizedQuestion)
	size += ord.String.Size(e.Answer)
	size += ord.String.Size(e.Domain)
	size += varint.Float64.Size(e.Confidence)
	size += varint.Int64.Size(e.UsageCount)
	size += varint.Int64.Size(e.CreatedAt.UnixMicro())
	size += varint.Int64.Size(e.UpdatedAt.UnixMicro())
	size += ord.String.Size(e.ValidationStatus)
	return size
}

func (knowledgeEntrySer) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for i := 0; i < 4; i++ { // Question, NormalizedQuestion, Answer, Domain
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = varint.Float64.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	for i := 0; i < 3; i++ { // UsageCount, CreatedAt, UpdatedAt
		if n1, err = varint.Int64.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}
