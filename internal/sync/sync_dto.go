package sync

type SyncRequest struct {
	Source string `json:"source" binding:"omitempty,oneof=devicelog accesslog all"`
	Since  string `json:"since" binding:"omitempty,datetime=2006-01-02"`
	Full   bool   `json:"full"`
}

type SyncResponse struct {
	Runs []RunResult `json:"runs"`
}
