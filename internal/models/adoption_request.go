package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdoptionStatus is the state of an adoption request.
type AdoptionStatus string

const (
	AdoptionStatusPending   AdoptionStatus = "pending"
	AdoptionStatusAccepted  AdoptionStatus = "accepted"
	AdoptionStatusRejected  AdoptionStatus = "rejected"
	AdoptionStatusWithdrawn AdoptionStatus = "withdrawn"
)

// Decisions are the statuses a listing owner may set.
func (s AdoptionStatus) IsDecision() bool {
	return s == AdoptionStatusAccepted || s == AdoptionStatusRejected
}

const MaxAdoptionMessageLength = 500

// AdoptionRequest is one user's request to adopt one pet. Owner is copied
// from the pet at creation so both sides can list requests without a join.
type AdoptionRequest struct {
	Base      `bson:",inline"`
	Pet       primitive.ObjectID `bson:"pet" json:"pet"`
	Requester primitive.ObjectID `bson:"requester" json:"requester"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	Message   string             `bson:"message" json:"message"`
	Status    AdoptionStatus     `bson:"status" json:"status"`
}

// AdoptionRequestDetail is a request with its pet and both parties joined.
// Any side whose document is gone is left nil.
type AdoptionRequestDetail struct {
	Base          `bson:",inline"`
	PetID         primitive.ObjectID `bson:"pet" json:"-"`
	RequesterID   primitive.ObjectID `bson:"requester" json:"-"`
	OwnerID       primitive.ObjectID `bson:"owner" json:"-"`
	Message       string             `bson:"message" json:"message"`
	Status        AdoptionStatus     `bson:"status" json:"status"`
	PetInfo       *PetSummary        `bson:"petInfo,omitempty" json:"pet"`
	RequesterInfo *OwnerSummary      `bson:"requesterInfo,omitempty" json:"requester"`
	OwnerInfo     *OwnerSummary      `bson:"ownerInfo,omitempty" json:"owner"`
}
