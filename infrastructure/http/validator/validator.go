package validator

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps page*size within int range for every allowed size.
	MaxPage = math.MaxInt / MaxPageSize
)

var (
	UserSortFields = []string{"createdAt", "updatedAt", "username", "email", "name", "status"}
	PostSortFields = []string{"createdAt", "updatedAt", "title"}
)

func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}

	// net/mail catches display-name forms the regex would miss
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}

	return entity.ValidEmail(strings.ToLower(email))
}

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ParseUserPage reads page, size, sortBy and direction. It returns nil when
// none of them is present so the caller gets every record.
func ParseUserPage(q url.Values) (*outbound.PageQuery, error) {
	if q.Get("page") == "" && q.Get("size") == "" && q.Get("sortBy") == "" && q.Get("direction") == "" {
		return nil, nil
	}

	page, err := parsePageAndSize(q)
	if err != nil {
		return nil, err
	}

	page.SortBy = q.Get("sortBy")
	if page.SortBy == "" {
		page.SortBy = "createdAt"
	}
	if !contains(UserSortFields, page.SortBy) {
		return nil, fmt.Errorf("sortBy must be one of %s", strings.Join(UserSortFields, ", "))
	}

	page.Direction, err = parseDirection(q.Get("direction"), outbound.SortAsc)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ParsePostPage reads page, size and sort=field,direction. Posts default to
// newest first.
func ParsePostPage(q url.Values) (*outbound.PageQuery, error) {
	if q.Get("page") == "" && q.Get("size") == "" && q.Get("sort") == "" {
		return nil, nil
	}

	page, err := parsePageAndSize(q)
	if err != nil {
		return nil, err
	}

	sort := q.Get("sort")
	if sort == "" {
		sort = "createdAt,desc"
	}
	field, dir, _ := strings.Cut(sort, ",")
	if !contains(PostSortFields, field) {
		return nil, fmt.Errorf("sort field must be one of %s", strings.Join(PostSortFields, ", "))
	}
	page.SortBy = field

	page.Direction, err = parseDirection(dir, outbound.SortAsc)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func parsePageAndSize(q url.Values) (*outbound.PageQuery, error) {
	page := &outbound.PageQuery{Size: DefaultPageSize}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > MaxPage {
			return nil, fmt.Errorf("page must be between 0 and %d", MaxPage)
		}
		page.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageSize {
			return nil, fmt.Errorf("size must be between 1 and %d", MaxPageSize)
		}
		page.Size = n
	}
	return page, nil
}

func parseDirection(value string, fallback outbound.SortDirection) (outbound.SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback, nil
	case "asc":
		return outbound.SortAsc, nil
	case "desc":
		return outbound.SortDesc, nil
	}
	return "", fmt.Errorf("direction must be asc or desc")
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
