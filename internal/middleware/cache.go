package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/medirota/coverage-platform/internal/config"
)

// cacheRecorder captures the response body and status while still
// forwarding everything to the client, so a cacheable response can be
// stored after the handler ran.
type cacheRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cr *cacheRecorder) WriteHeader(code int) {
	cr.status = code
	cr.ResponseWriter.WriteHeader(code)
}

func (cr *cacheRecorder) Write(b []byte) (int, error) {
	if cr.limit <= 0 {
		cr.buf.Write(b)
	} else if remain := cr.limit - cr.size; remain > 0 {
		if int64(len(b)) <= remain {
			cr.buf.Write(b)
		} else {
			cr.buf.Write(b[:remain])
		}
	}
	cr.size += int64(len(b))
	return cr.ResponseWriter.Write(b)
}

// callerCacheID identifies the authenticated caller for cache keying.
// Swap listings are per-caller (a medic never sees their own offers),
// so the roster identity comes first; admins fall back to the account
// id.  fmt.Sprint absorbs the claim types the JWT middleware may set
// (float64 from JSON claims, uint64 from tests).
func callerCacheID(c echo.Context) string {
	for _, key := range []string{"medic_id", "user_id"} {
		if v := c.Get(key); v != nil {
			return key + "=" + fmt.Sprint(v)
		}
	}
	return "anon"
}

// buildCacheKey derives the Redis key for a request.  The default
// strategy mixes the caller identity into the key; a shared entry on
// a per-caller listing would serve one medic's view to another.
// Caller-independent reads can opt into CacheKeyShared.
func buildCacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	parts := []string{r.Method, c.Path(), r.URL.RawQuery}
	if strings.ToLower(cfg.KeyStrategy) != config.CacheKeyShared {
		parts = append(parts, callerCacheID(c))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// packResponse encodes a cached response as
// [4 bytes status][4 bytes header length][header JSON][body].
func packResponse(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func unpackResponse(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// NewRedisCache returns a response cache middleware for read
// endpoints such as the available swaps listing.  Entries store
// status, headers and body so a HIT replays the original response
// unchanged.  With caching disabled or Redis unreachable the
// middleware is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := buildCacheKey(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := unpackResponse(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			cr := &cacheRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cr
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only successful responses are cached; error payloads
			// would otherwise stick for the full TTL.
			if cr.status != http.StatusOK {
				return nil
			}
			body := cr.buf.Bytes()
			if maxBody > 0 && cr.size > maxBody {
				return nil // truncated capture, do not cache a partial body
			}
			hdr := make(http.Header, len(c.Response().Header()))
			for k, vals := range c.Response().Header() {
				hdr[k] = append([]string(nil), vals...)
			}
			if payload, err := packResponse(cr.status, hdr, body); err == nil {
				_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
			}
			return nil
		}
	}
}
