package domain

// BorrowAgreementStatus represents the status of a borrow agreement as
// reported by the agreements collaborator.
type BorrowAgreementStatus string

// List of borrow agreement statuses relevant to delivery creation
const (
	AgreementPending  BorrowAgreementStatus = "PENDING"
	AgreementAccepted BorrowAgreementStatus = "ACCEPTED"
	AgreementRejected BorrowAgreementStatus = "REJECTED"
)

// BorrowAgreement is a read-only snapshot of an accepted borrow
// agreement, consumed by reference at delivery creation. The delivery
// core never mutates it and never re-derives identities from it later.
type BorrowAgreement struct {
	ID           int64
	Status       BorrowAgreementStatus
	BorrowerID   int64
	OwnerID      int64
	BookID       int64
	BookTitle    string
	BookAuthor   string
	BorrowerName string
	OwnerName    string
}

// Accepted reports whether the agreement allows delivery creation.
func (a *BorrowAgreement) Accepted() bool {
	return a.Status == AgreementAccepted
}
