package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// ContentKind discriminates what a favorite or report points at.
type ContentKind string

const (
	KindItem     ContentKind = "item"
	KindHousing  ContentKind = "housing"
	KindRoommate ContentKind = "roommate"
	KindStudent  ContentKind = "student"
	KindOwner    ContentKind = "owner"
)

var (
	FavoriteKinds = []ContentKind{KindItem, KindHousing, KindRoommate}
	ReportKinds   = []ContentKind{KindItem, KindHousing, KindRoommate, KindStudent, KindOwner}
)

func (k ContentKind) Valid() bool {
	return containsKind(ReportKinds, k)
}

func (k ContentKind) Favoritable() bool {
	return containsKind(FavoriteKinds, k)
}

func containsKind(kinds []ContentKind, k ContentKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// ContentRef identifies a single piece of content of any kind.
type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

func (r ContentRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
