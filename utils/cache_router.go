package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
)

// CacheRouter sets the cache-control header of the routes it wraps
type CacheRouter struct {
	CacheTime int // defaults to CacheNoCache = 0
	Public    bool
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cr.CacheTime != CacheCustom {
			if cr.CacheTime == CacheNoCache {
				c.Header("cache-control", "no-cache")
			} else {
				scope := "private"
				if cr.Public {
					scope = "public"
				}
				c.Header("cache-control", scope+", max-age="+strconv.Itoa(cr.CacheTime))
			}
		}
		c.Next()
	}
}
