package formtree_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/pkg/definition"
)

const signup = `
controls:
  email:
    value: ""
    validators:
      - name: required
      - name: email
  age:
    value: 17
    validators:
      - name: min
        args: {value: 18}
`

// ExampleParse demonstrates building a form from an inline definition and
// inspecting which controls fail validation.
func ExampleParse() {
	f, err := formtree.Parse([]byte(signup), definition.FormatYAML)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	for _, n := range f.Snapshot().Invalid() {
		fmt.Println(n.Path, n.Status)
	}

	if err := f.Patch(map[string]any{"email": "ada@example.com", "age": 36}); err != nil {
		log.Fatal(err)
	}
	status, err := f.Settle(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(status)

	// Output:
	// age INVALID
	// email INVALID
	// VALID
}

// ExampleForm_Decode demonstrates reading the form value into a struct.
func ExampleForm_Decode() {
	f, err := formtree.Parse([]byte(signup), definition.FormatYAML)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	type Signup struct {
		Email string `form:"email"`
		Age   int    `form:"age"`
	}
	if err := f.Set(Signup{Email: "grace@example.com", Age: 45}); err != nil {
		log.Fatal(err)
	}

	var s Signup
	if err := f.Decode(&s); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%+v\n", s)

	// Output:
	// {Email:grace@example.com Age:45}
}
