package dto

// ScorePostRequest carries the five rubric sub-scores a teacher assigns to a
// student statement. Each is on the 1-5 scale.
type ScorePostRequest struct {
	Clarity        int `json:"clarity" validate:"required,gte=1,lte=5"`
	Evidence       int `json:"evidence" validate:"required,gte=1,lte=5"`
	Logic          int `json:"logic" validate:"required,gte=1,lte=5"`
	Persuasiveness int `json:"persuasiveness" validate:"required,gte=1,lte=5"`
	Rebuttal       int `json:"rebuttal" validate:"required,gte=1,lte=5"`
}
