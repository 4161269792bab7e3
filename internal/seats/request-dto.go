package seats

// UpdateNoteRequest annotates a seat (wheelchair space, broken recliner, ...)
type UpdateNoteRequest struct {
	Note string `json:"note" binding:"max=500"`
}
