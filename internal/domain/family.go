package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Family represents a parent couple in the export hand-off graph. Unlike a
// free-form family tree there is no child-junction entity here: a couple's
// children are structural, implied by ascendancy numbering (the couple at
// slots 2A and 2A+1 has exactly the child at A).
type Family struct {
	ID               uuid.UUID    `json:"id"`
	Partner1ID       *uuid.UUID   `json:"partner1_id,omitempty"`
	Partner2ID       *uuid.UUID   `json:"partner2_id,omitempty"`
	RelationshipType RelationType `json:"relationship_type,omitempty"`
	MarriageDate     *GenDate     `json:"marriage_date,omitempty"`
	MarriagePlace    string       `json:"marriage_place,omitempty"`
	GedcomXref       string       `json:"gedcom_xref,omitempty"` // Original GEDCOM @XREF@ for round-trip
	Version          int64        `json:"version"`               // Optimistic locking version
}

// FamilyValidationError represents a validation error for a Family.
type FamilyValidationError struct {
	Field   string
	Message string
}

func (e FamilyValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewFamily creates a new Family with generated ID.
func NewFamily() *Family {
	return &Family{
		ID:      uuid.New(),
		Version: 1,
	}
}

// NewFamilyWithPartners creates a new Family with the specified partners.
func NewFamilyWithPartners(partner1, partner2 *uuid.UUID) *Family {
	return &Family{
		ID:         uuid.New(),
		Partner1ID: partner1,
		Partner2ID: partner2,
		Version:    1,
	}
}

// Validate checks if the family has valid data.
func (f *Family) Validate() error {
	var errs []error

	// At least one partner must be set
	if f.Partner1ID == nil && f.Partner2ID == nil {
		errs = append(errs, FamilyValidationError{Field: "partners", Message: "at least one partner must be set"})
	}

	// Partners must be different if both set
	if f.Partner1ID != nil && f.Partner2ID != nil && *f.Partner1ID == *f.Partner2ID {
		errs = append(errs, FamilyValidationError{Field: "partner2_id", Message: "cannot be the same as partner1_id"})
	}

	// Relationship type validation
	if !f.RelationshipType.IsValid() {
		errs = append(errs, FamilyValidationError{Field: "relationship_type", Message: fmt.Sprintf("invalid value: %s", f.RelationshipType)})
	}

	// Marriage date validation
	if f.MarriageDate != nil {
		if err := f.MarriageDate.Validate(); err != nil {
			errs = append(errs, FamilyValidationError{Field: "marriage_date", Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasPartner checks if the given person ID is a partner in this family.
func (f *Family) HasPartner(personID uuid.UUID) bool {
	return (f.Partner1ID != nil && *f.Partner1ID == personID) ||
		(f.Partner2ID != nil && *f.Partner2ID == personID)
}

// SetMarriageDate sets the marriage date from a string.
func (f *Family) SetMarriageDate(dateStr string) {
	if dateStr == "" {
		f.MarriageDate = nil
		return
	}
	gd := ParseGenDate(dateStr)
	f.MarriageDate = &gd
}

