//go:build arc_debug

package arc

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
