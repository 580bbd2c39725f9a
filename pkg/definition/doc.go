/*
Package definition loads declarative form descriptions and builds control trees.

A definition is a YAML or JSON document:

	controls:
	  email:
	    validators:
	      - name: required
	      - name: email
	    async:
	      - name: unique
	        args: {set: "users:email"}
	    debounce: 300ms
	  tags:
	    item:
	      validators:
	        - name: maxLength
	          args: {n: 20}
	    value: [go, redis]

Validator names are resolved through a registry.Registry; the builtin registry
knows the validators of package validators.
*/
package definition
