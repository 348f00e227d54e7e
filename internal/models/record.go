package models

import "fmt"

// Label is the binary class of an email.
type Label int

const (
	Ham  Label = 0 // benign
	Spam Label = 1 // malicious
)

// LabelNames maps class indices to the names returned by the API.
var LabelNames = map[Label]string{
	Ham:  "Not Spam",
	Spam: "Spam",
}

// Valid reports whether l is one of the two known classes.
func (l Label) Valid() bool {
	return l == Ham || l == Spam
}

func (l Label) String() string {
	if name, ok := LabelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// RawRecord is one labeled email, the atomic unit of the corpus.
type RawRecord struct {
	Text  string `json:"text" db:"text"`
	Label Label  `json:"label" db:"label"`
}
