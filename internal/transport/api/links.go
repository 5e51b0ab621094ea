package api

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Link элемент HAL-блока `_links`.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type Links map[string]Link

// baseURL абсолютный адрес сервиса, собранный из запроса. За прокси схему
// отдает заголовок X-Forwarded-Proto.
func baseURL(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		if c.Request.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	return proto + "://" + c.Request.Host
}

func selfLink(href string) Links {
	return Links{"self": {Href: href, Rel: "self"}}
}

// paginationLinks строит self/first/next ссылки для списочных ручек.
// next добавляется только когда есть следующая страница.
func paginationLinks(basePath string, limit uint, requestToken string, responseToken string) Links {
	limitParam := fmt.Sprintf("limit=%d", limit)
	selfQuery := limitParam
	if requestToken != "" {
		selfQuery += "&nextToken=" + url.QueryEscape(requestToken)
	}

	links := Links{
		"self":  {Href: basePath + "?" + selfQuery, Rel: "self"},
		"first": {Href: basePath + "?" + limitParam, Rel: "first"},
	}
	if responseToken != "" {
		links["next"] = Link{
			Href: basePath + "?" + limitParam + "&nextToken=" + url.QueryEscape(responseToken),
			Rel:  "next",
		}
	}
	return links
}
