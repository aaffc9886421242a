package book

import "time"

type CreateDTO struct {
	Title    string `json:"title"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
	Resume   string `json:"resume"`
}

// UpdateDTO carries partial-field semantics. A nil Quantity means not
// submitted, so zero stays expressible.
type UpdateDTO struct {
	Title    string `json:"title"`
	ISBN     string `json:"isbn"`
	Quantity *int   `json:"quantity"`
	Resume   string `json:"resume"`
}

func (d UpdateDTO) Empty() bool {
	return d.Title == "" && d.ISBN == "" && d.Quantity == nil && d.Resume == ""
}

type RejectDTO struct {
	Message string `json:"message"`
}

type LoanDTO struct {
	Books            []int64   `json:"books"`
	LoanAt           time.Time `json:"loanAt"`
	SupposedReturnAt time.Time `json:"supposedReturnAt"`
}
