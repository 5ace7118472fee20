package agreements

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bookbridge-delivery/internal/domain"
)

// HTTPGateway is a borrow-agreements gateway backed by the catalog
// service's HTTP API. Agreements are read-only inputs to the delivery
// core; the gateway never writes.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates an agreements gateway.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{baseURL: baseURL, client: client}
}

type agreementDTO struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Borrower struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"borrower"`
	Book struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Author string `json:"author"`
		Owner  struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"owner"`
	} `json:"book"`
}

// statusError carries the upstream HTTP status for retry classification.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("agreements gateway: upstream status %d", e.status)
}

// transportError marks network-level failures, which are retryable.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("agreements gateway: %v", e.err)
}

func (e *transportError) Unwrap() error { return e.err }

// Get fetches a borrow agreement snapshot by id. Returns nil when the
// agreement does not exist.
func (g *HTTPGateway) Get(ctx context.Context, id int64) (*domain.BorrowAgreement, error) {
	url := fmt.Sprintf("%s/agreements/%d", g.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("agreements gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	default:
		return nil, &statusError{status: resp.StatusCode}
	}

	var dto agreementDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("agreements gateway: decode response: %w", err)
	}

	agreement := mapAgreement(dto)
	return &agreement, nil
}

func mapAgreement(dto agreementDTO) domain.BorrowAgreement {
	return domain.BorrowAgreement{
		ID:           dto.ID,
		Status:       domain.BorrowAgreementStatus(dto.Status),
		BorrowerID:   dto.Borrower.ID,
		BorrowerName: dto.Borrower.Name,
		OwnerID:      dto.Book.Owner.ID,
		OwnerName:    dto.Book.Owner.Name,
		BookID:       dto.Book.ID,
		BookTitle:    dto.Book.Title,
		BookAuthor:   dto.Book.Author,
	}
}
