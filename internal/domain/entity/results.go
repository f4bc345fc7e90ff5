package entity

// FetchResults is an additive counter summarizing fetch/refresh
// outcomes. Add is associative and commutative, so many per-source
// results fold into one summary in any order.
type FetchResults struct {
	Sources         int
	AddedVideos     int
	DeletedVideos   int
	RefreshedVideos int
}

// Add returns the element-wise sum of two results.
func (r FetchResults) Add(other FetchResults) FetchResults {
	return FetchResults{
		Sources:         r.Sources + other.Sources,
		AddedVideos:     r.AddedVideos + other.AddedVideos,
		DeletedVideos:   r.DeletedVideos + other.DeletedVideos,
		RefreshedVideos: r.RefreshedVideos + other.RefreshedVideos,
	}
}
