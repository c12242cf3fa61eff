package model

// CastMember is one entry of a movie's cast.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order,omitempty"`
}

// CrewMember is one entry of a movie's crew.
type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department,omitempty"`
	ProfilePath *string `json:"profile_path"`
}

// Credits is the body of /movie/{id}/credits.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Top returns a copy of c keeping at most n cast and n crew members.
func (c Credits) Top(n int) Credits {
	out := Credits{ID: c.ID, Cast: []CastMember{}, Crew: []CrewMember{}}
	if n <= 0 {
		return out
	}
	out.Cast = append(out.Cast, c.Cast[:min(n, len(c.Cast))]...)
	out.Crew = append(out.Crew, c.Crew[:min(n, len(c.Crew))]...)
	return out
}

// Video is one entry of /movie/{id}/videos.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// VideoList is the body of /movie/{id}/videos.
type VideoList struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// TrailerKey returns the key of the first YouTube trailer, or "" when there is none.
func (v VideoList) TrailerKey() string {
	for _, video := range v.Results {
		if video.Site == "YouTube" && video.Type == "Trailer" {
			return video.Key
		}
	}
	return ""
}

// ImageData describes one image of /movie/{id}/images.
type ImageData struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// Images is the body of /movie/{id}/images.
type Images struct {
	ID        int         `json:"id"`
	Backdrops []ImageData `json:"backdrops"`
	Posters   []ImageData `json:"posters"`
	Logos     []ImageData `json:"logos,omitempty"`
}
