package paginate

import (
	"errors"
	"net/http"
	"strconv"
)

var ErrInvalidPage = errors.New("invalid page")

// Offset вычисляет смещение для страницы; страницы за пределами результата
// считаются ошибкой, первая страница допустима и для пустого списка
func Offset(count, page, size int) (int, error) {
	if page < 1 {
		return 0, ErrInvalidPage
	}
	offset := (page - 1) * size
	if offset >= count && page != 1 {
		return 0, ErrInvalidPage
	}
	return offset, nil
}

// Page — конверт пагинации
type Page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// New оборачивает результаты выборки в конверт со ссылками на соседние страницы
func New(r *http.Request, count, page, size int, results interface{}) Page {
	p := Page{Count: count, Results: results}
	if page*size < count {
		p.Next = pageURL(r, page+1)
	}
	if page > 1 {
		p.Previous = pageURL(r, page-1)
	}
	return p
}

// pageURL строит абсолютную ссылку на страницу, сохраняя остальные
// query-параметры; для первой страницы параметр page опускается
func pageURL(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	s := u.String()
	return &s
}
