package services

import "time"

func (s *AccountService) SetNow(now func() time.Time) { s.now = now }
