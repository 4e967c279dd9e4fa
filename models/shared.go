package models

// Location is a simple point with an optional human-readable address.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// TagEntity is a WikiData-backed tag. EntityID is empty for manual tags.
type TagEntity struct {
	Label       string   `bson:"label" json:"label"`
	EntityID    string   `bson:"entityId" json:"entityId"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Aliases     []string `bson:"aliases,omitempty" json:"aliases,omitempty"`
}

// UserSummary is the embedded view of a user returned inside other resources.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// ServiceSummary is the embedded view of a service returned inside other resources.
type ServiceSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}
