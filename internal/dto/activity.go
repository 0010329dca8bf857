package dto

// CreateActivityRequest stores a reusable activity definition.
type CreateActivityRequest struct {
	Name          string  `json:"name" validate:"required,max=120"`
	Type          string  `json:"type" validate:"required,oneof=FixedActivity Event Task"`
	DurationHours float64 `json:"durationHours" validate:"gt=0,lte=168"`
	EventDate     string  `json:"eventDate" validate:"required_if=Type Event,omitempty,datetime=2006-01-02"`
	Start         string  `json:"start" validate:"required_if=Type Event,omitempty,datetime=15:04"`
	TargetDay     string  `json:"targetDay" validate:"omitempty,weekday"`
	PreferredTime string  `json:"preferredTime" validate:"omitempty,oneof=any morning evening"`
}

// ActivityQuery filters activity listings.
type ActivityQuery struct {
	Type     string `form:"type" json:"type" validate:"omitempty,oneof=FixedActivity Event Task"`
	Page     int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=200"`
}
