package dto

type NewsRequest struct {
	Title     string  `json:"title"     validate:"required,min=3,max=200"`
	Slug      string  `json:"slug"      validate:"omitempty,max=200"`
	Body      string  `json:"body"      validate:"required"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url"`
	Published bool    `json:"published"`
}

type NewsResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Body        string  `json:"body"`
	ImageURL    *string `json:"image_url"`
	Published   bool    `json:"published"`
	PublishedAt *string `json:"published_at"`
	CreatedAt   string  `json:"created_at"`
}

type AdRequest struct {
	Title    string  `json:"title"     validate:"required,min=2,max=120"`
	ImageURL string  `json:"image_url" validate:"required,url"`
	LinkURL  *string `json:"link_url"  validate:"omitempty,url"`
	Position int     `json:"position"  validate:"min=0"`
	Active   bool    `json:"active"`
}

type AdResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	LinkURL  *string `json:"link_url"`
	Position int     `json:"position"`
	Active   bool    `json:"active"`
}

// UpdateSettingsRequest maps setting keys to values. Unknown keys are rejected.
type UpdateSettingsRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
