package service

import (
	"slices"
	"strings"

	"github.com/msomdec/limur-users/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder is the name ordering of the user list.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder defaults anything but "desc" to ascending.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortDesc {
		return SortDesc
	}
	return SortAsc
}

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// ListUsers filters users by address and sorts them by name. The input
// slice is not modified.
func ListUsers(users []domain.User, search string, order SortOrder) []domain.User {
	out := FilterByAddress(users, search)
	SortByName(out, order)
	return out
}

// FilterByAddress keeps users whose street, city or suite contains search,
// ignoring case. It always returns a new slice.
func FilterByAddress(users []domain.User, search string) []domain.User {
	search = strings.ToLower(search)
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Address.Street), search) ||
			strings.Contains(strings.ToLower(u.Address.City), search) ||
			strings.Contains(strings.ToLower(u.Address.Suite), search) {
			out = append(out, u)
		}
	}
	return out
}

// SortByName sorts users in place by name using Polish collation.
func SortByName(users []domain.User, order SortOrder) {
	// A Collator is not safe for concurrent use.
	c := collate.New(language.Polish)
	slices.SortStableFunc(users, func(a, b domain.User) int {
		cmp := c.CompareString(a.Name, b.Name)
		if order == SortDesc {
			return -cmp
		}
		return cmp
	})
}
