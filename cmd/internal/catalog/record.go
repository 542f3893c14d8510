package catalog

import "time"

// Difficulty grades a spot.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Category is the kind of gear under review.
type Category string

const (
	CategoryDeck  Category = "deck"
	CategoryTruck Category = "truck"
	CategoryWheel Category = "wheel"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryDeck, CategoryTruck, CategoryWheel:
		return true
	default:
		return false
	}
}

// Record is implemented by every catalog resource.
type Record interface {
	Key() string
	Owner() string
	Created() time.Time
}

// Spot is a place to skate.
type Spot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	ImageURL    string     `json:"image_url"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (s Spot) Key() string        { return s.ID }
func (s Spot) Owner() string      { return s.CreatedBy }
func (s Spot) Created() time.Time { return s.CreatedAt }

// NewSpot starts a spot owned by owner. Content fields are filled by SpotInput.Apply.
func NewSpot(id, owner string, at time.Time) Spot {
	return Spot{ID: id, CreatedBy: owner, CreatedAt: at}
}

// Gear is a review of a deck, truck or wheel set.
type Gear struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Rating      *int      `json:"rating"`
	ImageURL    string    `json:"image_url"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g Gear) Key() string        { return g.ID }
func (g Gear) Owner() string      { return g.CreatedBy }
func (g Gear) Created() time.Time { return g.CreatedAt }

// NewGear starts a gear review owned by owner.
func NewGear(id, owner string, at time.Time) Gear {
	return Gear{ID: id, CreatedBy: owner, CreatedAt: at}
}
