// Package rate provides the Redis-backed fixed-window counters that guard
// credential verification against brute-force attempts. It implements
// mechanism only; whether a limited login fails open or closed is the
// realm's decision.
package rate
