package dto

type FaceSearchResult struct {
	Photo      PhotoResponse `json:"photo"`
	Similarity float64       `json:"similarity"`
}

type FaceSearchResponse struct {
	Results []FaceSearchResult `json:"results"`
	Total   int                `json:"total"`
}
