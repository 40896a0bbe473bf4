package service

import "time"

func (s *ProfileService) SetNow(now func() time.Time) { s.now = now }

func (tb *TokenBucket) SetNow(now func() time.Time) { tb.now = now }

func (r *UserStores) SetNow(now func() time.Time) { r.now = now }

func (r *Retention) SetNow(now func() time.Time) { r.now = now }
