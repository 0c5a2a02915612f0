package emitter_test

import (
	"fmt"

	"github.com/refaktor/sobind/emitter"
)

func ExampleCodeBuilder() {
	var cb emitter.CodeBuilder
	cb.Linef(`package foo`)
	cb.Linef(``)
	cb.Block(`import (`, `)`, func() {
		cb.Linef(`"unsafe"`)
		cb.Linef(`"fmt"`)
	})
	cb.Linef(``)
	cb.Block(`type Point struct {`, `}`, func() {
		cb.Linef(`X int32`)
		cb.Linef(`Label unsafe.Pointer`)
	})
	cb.Linef(``)
	cb.Block(`func Dump(p Point) {`, `}`, func() {
		for i := 0; i < 3; i++ {
			cb.Linef(`fmt.Println(p.X + %v)`, i)
		}
	})

	code, err := cb.FmtString()
	if err != nil {
		panic(err)
	}
	fmt.Println(code)
	// Output:
	// package foo
	//
	// import (
	// 	"fmt"
	// 	"unsafe"
	// )
	//
	// type Point struct {
	// 	X     int32
	// 	Label unsafe.Pointer
	// }
	//
	// func Dump(p Point) {
	// 	fmt.Println(p.X + 0)
	// 	fmt.Println(p.X + 1)
	// 	fmt.Println(p.X + 2)
	// }
}
