// Package field holds the scalar grids the simulation queries and updates.
//
// A Field is a row-major grid of float64 cells where cell (row, col) covers
// the unit square [col, col+1) × [row, row+1) in arena coordinates. Regions
// are polygons in arena coordinates; they are rasterized onto the grid by
// testing cell centers with the even-odd rule, and only the cells inside the
// region's bounding box (clipped to the grid) are ever touched.
//
// GroundTruth is a binary obstacle map fixed at construction. Belief is a
// probability grid whose cells stay within [0, 1] under every write.
package field
