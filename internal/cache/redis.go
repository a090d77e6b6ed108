package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaseKeyPrefix = "hostel:lease:"

// releaseScript deletes the lease only while this owner still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Connect opens a client and pings it. On failure the client is closed and
// callers fall back to running without a shared lease.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Lease lets one instance of a fleet claim a named job for a while. A Lease
// without a client grants every claim, which is right for a single instance.
type Lease struct {
	client *redis.Client
	owner  string
}

func NewLease(client *redis.Client, owner string) *Lease {
	return &Lease{client: client, owner: owner}
}

// Acquire claims name for ttl. It reports false when another owner holds it.
func (l *Lease) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	return l.client.SetNX(ctx, leaseKeyPrefix+name, l.owner, ttl).Result()
}

func (l *Lease) Release(ctx context.Context, name string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{leaseKeyPrefix + name}, l.owner).Err()
}
