package models

import (
	"bytes"
	"io"
)

type PayloadKind int

const (
	//PayloadAbsent - ресурс ответил статусом, отличным от 200
	PayloadAbsent PayloadKind = iota
	PayloadText
	PayloadBinary
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadBinary:
		return "binary"
	default:
		return "absent"
	}
}

//Payload - результат одного GET запроса. Raw - тело как есть, Text только для PayloadText
type Payload struct {
	Kind        PayloadKind
	Status      int
	ContentType string
	Raw         []byte
	Text        string
}

func (p *Payload) Absent() bool {
	return p == nil || p.Kind == PayloadAbsent
}

//Empty - нет ни одного байта содержимого
func (p *Payload) Empty() bool {
	return p.Absent() || len(p.Raw) == 0
}

func (p *Payload) Reader() io.Reader {
	if p.Kind == PayloadText {
		return bytes.NewReader([]byte(p.Text))
	}
	return bytes.NewReader(p.Raw)
}
