// Package collision provides rigid obstacles for a cloth.Cloth.
//
// Every primitive implements cloth.Collider. A primitive only ever moves a
// point mass that has penetrated it, and it resolves the penetration by
// projecting to the surface and blending back toward the previous position
// by (1 - Friction). Friction 0 slides freely; friction 1 sticks.
package collision
