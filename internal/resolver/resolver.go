package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyReference  = errors.New("empty reference")
	ErrEmptyPath       = errors.New("reference has no path")
	ErrNoAuthority     = errors.New("reference has a scheme but no authority")
	ErrBaseNotAbsolute = errors.New("base uri is not absolute")
)

//ResolutionError - ссылку нельзя превратить в абсолютный URI
type ResolutionError struct {
	Ref string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %s", e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

//ParseBase - URI страницы, нужны схема и хост
func ParseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base %q: %w", raw, ErrBaseNotAbsolute)
	}
	return u, nil
}

//Resolve - абсолютный URI для ссылки относительно base, фрагмент отбрасывается.
//Сегменты "." и ".." не нормализуются (упрощение RFC 3986)
func Resolve(base *url.URL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &ResolutionError{Ref: ref, Err: ErrEmptyReference}
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", &ResolutionError{Ref: ref, Err: err}
	}
	u.Fragment = ""
	u.RawFragment = ""

	if u.Host != "" {
		//Протокол-относительная ссылка (//cdn/x.png) получает схему страницы
		if u.Scheme == "" {
			u.Scheme = base.Scheme
		}
		return u.String(), nil
	}
	if u.Scheme != "" || u.Opaque != "" {
		return "", &ResolutionError{Ref: ref, Err: ErrNoAuthority}
	}

	path := u.EscapedPath()
	if path == "" {
		return "", &ResolutionError{Ref: ref, Err: ErrEmptyPath}
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if path[0] != '/' {
		path = dir(base.EscapedPath()) + path
	}
	return base.Scheme + "://" + base.Host + path, nil
}

//dir: "/a/b/c" -> "/a/b/", "" и "/" -> "/"
func dir(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "/"
	}
	return p[:i+1]
}
