package model

import "time"

// Link represents a shortened URL entity.
// ClickEvents are embedded in the link document so a click append and the
// counter increment land in a single atomic document update.
type Link struct {
	ID          string       `json:"id" bson:"_id"`
	ShortCode   string       `json:"short_code" bson:"short_code"`
	FullURL     string       `json:"full_url" bson:"full_url"`
	OwnerID     string       `json:"owner_id" bson:"owner_id"`
	ClickCount  int64        `json:"click_count" bson:"click_count"`
	ClickEvents []ClickEvent `json:"click_events" bson:"click_events"`
	QRCode      []byte       `json:"-" bson:"qr_code,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
}

// HasQRCode reports whether a QR code was rendered for this link.
func (l *Link) HasQRCode() bool {
	return len(l.QRCode) > 0
}
