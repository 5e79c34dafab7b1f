package domain

import "time"

// Headline is one gallery record on the exhibit wall. A record holds either
// a re-hosted image URL or inline base64 image data, and gains an animation
// URL once the image-to-video round trip completes.
type Headline struct {
	ID           string
	Headline     string
	TeamName     string
	ImageURL     string
	ImageData    string
	AnimationURL string
	IsAnimating  bool
	Country      string
	CreatedAt    time.Time
}

// AnimationUpdate carries a partial update for a headline's animation state.
// Nil fields are left untouched.
type AnimationUpdate struct {
	AnimationURL *string
	IsAnimating  *bool
}
