package tmpl

// Built-in deployment command templates, selected by the opposing role.
// Role-token placeholders (@{server_service:ip:decimal} and friends) are
// rewritten to concrete service names before rendering; the remaining
// @{service:attr:format} markers are resolved by the executor environment.

var builtinTemplates = map[string]string{
	"server_command": `{{timeout_cmd}}./{{test_name}} seed={{seed}} server_addr=@{server_service:ip:decimal} server_port={{server_port}} client_addr=@{client_service:ip:decimal}{{#if iterations_per_test}} iters={{iterations_per_test}}{{/if}} > /app/logs/run/stdout.log 2> /app/logs/run/stderr.log`,

	"client_command": `{{timeout_cmd}}./{{test_name}} seed={{seed}} client_addr=@{client_service:ip:decimal} client_port={{client_port}} server_addr=@{server_service:ip:decimal}{{#if iterations_per_test}} iters={{iterations_per_test}}{{/if}} > /app/logs/run/stdout.log 2> /app/logs/run/stderr.log`,
}
