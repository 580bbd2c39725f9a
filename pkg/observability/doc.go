/*
Package observability turns the validation pipeline of a form zone into metrics
and logs.

Both Metrics.Hooks and LogHooks return form.Hooks; combine them with
form.ChainHooks and pass the result to form.WithHooks:

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer, "formtree")
	if err != nil {
		return err
	}
	zone := form.NewZone(form.WithHooks(form.ChainHooks(
		metrics.Hooks(),
		observability.LogHooks(logger),
	)))
*/
package observability
