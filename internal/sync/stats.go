package sync

// SyncStats aggregates one run. All failures a run survives show up here;
// only a connectivity failure (or a concurrent-run rejection) surfaces as an
// error from Sync, and then no writes have happened.
type SyncStats struct {
	Source            string `json:"source"`
	Fetched           int    `json:"fetched"`
	Groups            int    `json:"groups"`
	CheckIns          int    `json:"check_ins"`
	CheckOuts         int    `json:"check_outs"`
	Skipped           int    `json:"skipped"`
	Lates             int    `json:"lates"`
	Overtimes         int    `json:"overtimes"`
	Errors            int    `json:"errors"`
	EmployeesNotFound int    `json:"employees_not_found"`
	EmployeesCreated  int    `json:"employees_created"`
	DurationMs        int64  `json:"duration_ms"`
}

func (s SyncStats) HasErrors() bool {
	return s.Errors > 0
}

func (s *SyncStats) add(res GroupResult) {
	if res.EmployeeNotFound {
		s.EmployeesNotFound++
		return
	}
	if res.EmployeeCreated {
		s.EmployeesCreated++
	}
	if res.CheckInCreated {
		s.CheckIns++
	}
	if res.CheckOutCreated {
		s.CheckOuts++
	}
	if res.Late {
		s.Lates++
	}
	if res.Overtime {
		s.Overtimes++
	}
	s.Skipped += res.Skipped
}
