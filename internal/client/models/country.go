package models

// Country is read-only reference data for the phone prompt.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DialCode string `json:"dial_code"`
	Flag     string `json:"flag"`
}
