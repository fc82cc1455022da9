//go:build !arc_debug

package arc

const debugging = false

func assert(bool, string) {}
