package model

import "time"

// Product is a catalog record. Zero dimensions mean the value is missing in
// the source data.
type Product struct {
	ID         string
	Category   string
	LengthCm   float64
	HeightCm   float64
	WidthCm    float64
	WeightG    float64
	PhotoCount int
}

// VolumeCm3 returns the product volume, or 0 when any dimension is missing.
func (p Product) VolumeCm3() float64 {
	if p.LengthCm <= 0 || p.HeightCm <= 0 || p.WidthCm <= 0 {
		return 0
	}
	return p.LengthCm * p.HeightCm * p.WidthCm
}

// Density returns weight over volume in g/cm³, or 0 when undefined.
func (p Product) Density() float64 {
	v := p.VolumeCm3()
	if v <= 0 || p.WeightG <= 0 {
		return 0
	}
	return p.WeightG / v
}

// Review is a customer review joined to its order by OrderID.
type Review struct {
	ID             string
	OrderID        string
	Score          int
	CommentTitle   string
	CommentMessage string
	CreatedAt      time.Time
	AnsweredAt     *time.Time
}

// Silent reports whether the review carries no written feedback.
func (r Review) Silent() bool {
	return r.CommentTitle == "" && r.CommentMessage == ""
}
