package models

import "time"

// ClientProfile is the brand configuration for one tenant. A profile is
// immutable once registered; updates replace it wholesale.
type ClientProfile struct {
	ClientID         string    `bson:"client_id" json:"client_id" binding:"required,min=2,max=100"`
	BrandVoice       string    `bson:"brand_voice" json:"brand_voice" binding:"required"`
	Tone             string    `bson:"tone" json:"tone" binding:"required"`
	Lexicon          []string  `bson:"lexicon" json:"lexicon"`
	AvoidTerms       []string  `bson:"avoid_terms" json:"avoid_terms"`
	DeliverableTypes []string  `bson:"deliverable_types" json:"deliverable_types" binding:"required,min=1"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// SupportsDeliverable reports whether the profile allows the given
// deliverable type.
func (p ClientProfile) SupportsDeliverable(deliverableType string) bool {
	for _, dt := range p.DeliverableTypes {
		if dt == deliverableType {
			return true
		}
	}
	return false
}

type RegisterProfileRequest struct {
	ClientID         string   `json:"client_id" binding:"required,min=2,max=100"`
	BrandVoice       string   `json:"brand_voice" binding:"required"`
	Tone             string   `json:"tone" binding:"required"`
	Lexicon          []string `json:"lexicon"`
	AvoidTerms       []string `json:"avoid_terms"`
	DeliverableTypes []string `json:"deliverable_types" binding:"required,min=1"`
}

type UpdateProfileRequest struct {
	BrandVoice       string   `json:"brand_voice" binding:"required"`
	Tone             string   `json:"tone" binding:"required"`
	Lexicon          []string `json:"lexicon"`
	AvoidTerms       []string `json:"avoid_terms"`
	DeliverableTypes []string `json:"deliverable_types" binding:"required,min=1"`
}
