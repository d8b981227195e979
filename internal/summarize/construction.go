package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgstrings "apsmcp/pkg/strings"
)

// Pagination is the paging block of the construction services.
type Pagination struct {
	Limit        int `json:"limit"`
	Offset       int `json:"offset"`
	TotalResults int `json:"totalResults"`
}

// resultsPage is the envelope of the issues and submittals list endpoints.
type resultsPage[T any] struct {
	Pagination Pagination `json:"pagination"`
	Results    []T        `json:"results"`
}

// decodePage decodes the envelope one member at a time. Results that are not
// objects are dropped and wrongly typed fields are left zero.
func decodePage[T any](raw []byte) (*resultsPage[T], error) {
	var page resultsPage[T]
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &page, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("failed to decode results page: invalid JSON")
	}

	var envelope struct {
		Pagination json.RawMessage `json:"pagination"`
		Results    json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &page, nil
	}

	if isObject(envelope.Pagination) {
		// Type errors leave the offending field zero and keep the rest.
		_ = json.Unmarshal(envelope.Pagination, &page.Pagination)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(envelope.Results, &elems); err != nil {
		return &page, nil
	}
	page.Results = make([]T, 0, len(elems))
	for _, elem := range elems {
		if !isObject(elem) {
			continue
		}
		var item T
		_ = json.Unmarshal(elem, &item)
		page.Results = append(page.Results, item)
	}
	return &page, nil
}

// IssueSummary is a compact issue record.
type IssueSummary struct {
	ID          string `json:"id"`
	DisplayID   string `json:"display_id,omitempty"`
	Title       string `json:"title"`
	Status      string `json:"status,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// IssueList is a page of issues with per-status counts.
type IssueList struct {
	Total    int            `json:"total"`
	Returned int            `json:"returned"`
	ByStatus map[string]int `json:"by_status"`
	Issues   []IssueSummary `json:"issues"`
}

type issueResult struct {
	ID             flexString `json:"id"`
	DisplayID      flexString `json:"displayId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	AssignedTo     flexString `json:"assignedTo"`
	AssignedToType string     `json:"assignedToType"`
	DueDate        string     `json:"dueDate"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

// Issues summarizes an issues list response. Descriptions are shortened to
// a single bounded line.
func Issues(raw []byte) (IssueList, error) {
	page, err := decodePage[issueResult](raw)
	if err != nil {
		return IssueList{}, err
	}

	out := IssueList{
		Total:    page.Pagination.TotalResults,
		Returned: len(page.Results),
		ByStatus: map[string]int{},
		Issues:   make([]IssueSummary, 0, len(page.Results)),
	}
	for _, r := range page.Results {
		out.Issues = append(out.Issues, IssueSummary{
			ID:          string(r.ID),
			DisplayID:   string(r.DisplayID),
			Title:       r.Title,
			Status:      r.Status,
			AssignedTo:  string(r.AssignedTo),
			DueDate:     r.DueDate,
			Description: pkgstrings.Truncate(r.Description, pkgstrings.DefaultTextMaxLen),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
		if r.Status != "" {
			out.ByStatus[r.Status]++
		}
	}
	if out.Total < out.Returned {
		out.Total = out.Returned
	}
	return out, nil
}

// SubmittalSummary is a compact submittal item record.
type SubmittalSummary struct {
	ID             string `json:"id"`
	Identifier     string `json:"identifier,omitempty"`
	Title          string `json:"title"`
	State          string `json:"state,omitempty"`
	SpecIdentifier string `json:"spec,omitempty"`
	Type           string `json:"type,omitempty"`
	Manager        string `json:"manager,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// SubmittalList is a page of submittal items with per-state counts.
type SubmittalList struct {
	Total    int                `json:"total"`
	Returned int                `json:"returned"`
	ByState  map[string]int     `json:"by_state"`
	Items    []SubmittalSummary `json:"items"`
}

type submittalResult struct {
	ID             flexString `json:"id"`
	Identifier     flexString `json:"identifier"`
	Title          string     `json:"title"`
	StateID        string     `json:"stateId"`
	StatusID       string     `json:"statusId"`
	SpecIdentifier string     `json:"specIdentifier"`
	TypeValue      string     `json:"typeValue"`
	Manager        flexString `json:"manager"`
	DueDate        string     `json:"dueDate"`
	UpdatedAt      string     `json:"updatedAt"`
}

// Submittals summarizes a submittal items list response.
func Submittals(raw []byte) (SubmittalList, error) {
	page, err := decodePage[submittalResult](raw)
	if err != nil {
		return SubmittalList{}, err
	}

	out := SubmittalList{
		Total:    page.Pagination.TotalResults,
		Returned: len(page.Results),
		ByState:  map[string]int{},
		Items:    make([]SubmittalSummary, 0, len(page.Results)),
	}
	for _, r := range page.Results {
		state := pkgstrings.FirstNonEmpty(r.StateID, r.StatusID)
		out.Items = append(out.Items, SubmittalSummary{
			ID:             string(r.ID),
			Identifier:     string(r.Identifier),
			Title:          r.Title,
			State:          state,
			SpecIdentifier: r.SpecIdentifier,
			Type:           r.TypeValue,
			Manager:        string(r.Manager),
			DueDate:        r.DueDate,
			UpdatedAt:      r.UpdatedAt,
		})
		if state != "" {
			out.ByState[state]++
		}
	}
	if out.Total < out.Returned {
		out.Total = out.Returned
	}
	return out, nil
}
