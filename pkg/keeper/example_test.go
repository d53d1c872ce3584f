package keeper_test

import (
	"context"
	"fmt"

	"github.com/keeperio/promisekeeper/pkg/keeper"
)

// ExamplePromiseKeeper_Submit demonstrates fire-and-observe submission.
func ExamplePromiseKeeper_Submit() {
	pk, err := keeper.New(keeper.WithWorkers(1))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	p := pk.Submit(func(ctx context.Context) (interface{}, error) {
		return 7 * 7, nil
	})

	result, err := p.Await(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(result)
	// Output: 49
}

// ExamplePromise_ThenDo demonstrates continuation chaining.
func ExamplePromise_ThenDo() {
	pk, _ := keeper.New(keeper.WithAutoStart(false))

	p := pk.Submit(func(ctx context.Context) (interface{}, error) {
		return -5, nil
	}).ThenDo(func(p *keeper.Promise) (interface{}, error) {
		return p.Result().(int) * 5, nil
	}).ThenDo(func(p *keeper.Promise) (interface{}, error) {
		return p.Result().(int) - 5, nil
	})

	if err := pk.Start(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	result, _ := p.Await(context.Background())
	fmt.Println(result)
	// Output: -30
}

// ExampleSubmitTyped demonstrates the generics wrapper.
func ExampleSubmitTyped() {
	pk, _ := keeper.New()

	p := keeper.SubmitTyped(pk, func(ctx context.Context) (string, error) {
		return "promise kept", nil
	})

	result, _ := p.Await(context.Background())
	fmt.Println(result)
	// Output: promise kept
}
