package services

import "time"

func (s *SchedulerService) SetNow(now func() time.Time) { s.now = now }
