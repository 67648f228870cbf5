package chaiscript_test

import (
	"context"
	"fmt"

	chaiscript "github.com/clanmills/ChaiScript"
	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/dynamic"
	"github.com/clanmills/ChaiScript/errors"
)

func Example() {
	ctx := context.Background()
	e := chaiscript.New()
	_ = e.AddFunc("add", func(a, b int) int { return a + b })

	result, err := e.Call(ctx, "add", boxed.New(3), boxed.New(4))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(result.Interface())
	// Output: 7
}

func ExampleEngine_AddMethod() {
	ctx := context.Background()
	e := chaiscript.New()
	_ = e.AddMethod("Greeter", "greet", func(self *dynamic.Object, who string) string {
		return "hello, " + who
	})

	result, _ := e.Call(ctx, "greet", dynamic.New("Greeter"), boxed.New("world"))
	fmt.Println(result.Interface())

	_, err := e.Call(ctx, "greet", dynamic.New("Stranger"), boxed.New("world"))
	fmt.Println(err)
	// Output:
	// hello, world
	// dispatch error: no matching function for greet(*dynamic.Object, string) (1 candidates)
}

func ExampleFunctor() {
	e := chaiscript.New()
	_ = e.AddFunc("twice", func(s string) string { return s + s })

	twice, err := chaiscript.Functor[func(string) string](e, "twice")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(twice("ab"))
	// Output: abab
}

func Example_formatter() {
	e := chaiscript.New()
	_ = e.AddFunc("add", func(a, b int) int { return a + b })

	_, err := e.Call(context.Background(), "ad", boxed.New(1), boxed.New(2))
	fmt.Print(errors.NewFormatter(false).Format(err))
	// Output:
	// dispatch error: no matching function for ad
	//   args: (int, int)
	//   candidates: 0
	//   = hint: did you mean 'add'?
}
