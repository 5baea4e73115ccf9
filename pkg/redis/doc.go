// Package redis provides Redis connectivity with startup retry.
//
// The auth subsystem uses Redis for short-lived one-time values such as
// OAuth CSRF state tokens, where atomic consume-on-read (GETDEL) and native
// TTL expiry fit better than a relational table.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
package redis
