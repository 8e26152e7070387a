package redis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"goshortlink/cache/cacher"

	redigo "github.com/gomodule/redigo/redis"
)

type redis struct {
	pool *redigo.Pool
}

func New(host string, port int) cacher.Engine {
	pool := &redigo.Pool{
		Dial: func() (redigo.Conn, error) {
			c, err := redigo.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
			if err != nil {
				return nil, err
			}
			return c, nil
		},

		// Periodic check
		TestOnBorrow: func(c redigo.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &redis{pool}
}

func (r *redis) Get(key string) (string, error) {
	reply, err := r.do("GET", key)
	if err != nil {
		return "", err
	}
	if reply == nil {
		return "", cacher.ErrEntryNotFound
	}
	return redigo.String(reply, err)
}

func (r *redis) Set(key, value string, expiration time.Duration) error {
	// PX keeps sub-second TTLs meaningful; EX would truncate them to zero
	ms := int64(expiration / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	if _, err := r.do("SET", key, value, "PX", ms); err != nil {
		return fmt.Errorf("call SET: %w", err)
	}
	return nil
}

func (r *redis) Delete(key string) error {
	_, err := r.do("DEL", key)
	return err
}

func (r *redis) Ping() error {
	_, err := r.do("PING")
	return err
}

// Stats reads server-wide hit/miss counters from INFO and the key count
// from DBSIZE.
func (r *redis) Stats() (cacher.Stats, error) {
	reply, err := r.do("INFO", "stats")
	if err != nil {
		return cacher.Stats{}, err
	}
	info, err := redigo.String(reply, err)
	if err != nil {
		return cacher.Stats{}, err
	}
	hits := parseInfoCounter(info, "keyspace_hits")
	misses := parseInfoCounter(info, "keyspace_misses")

	reply, err = r.do("DBSIZE")
	if err != nil {
		return cacher.Stats{}, err
	}
	totalKeys, err := redigo.Int64(reply, err)
	if err != nil {
		return cacher.Stats{}, err
	}

	var hitRatio float64
	if hits+misses > 0 {
		hitRatio = float64(hits) / float64(hits+misses)
	}
	return cacher.Stats{HitRatio: hitRatio, TotalKeys: totalKeys}, nil
}

func (r *redis) do(commandName string, args ...interface{}) (reply interface{}, err error) {
	c := r.pool.Get()
	defer c.Close()
	return c.Do(commandName, args...)
}

func parseInfoCounter(info, field string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if !strings.HasPrefix(line, field+":") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(line, field+":"), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
