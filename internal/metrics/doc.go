// Package metrics holds per-frame observers of a cloth. Each metric is fed
// the cloth after every frame and reports one number.
package metrics
