/*
Package config loads and validates Burrow's node configuration.

Configuration is a YAML file merged over built-in defaults:

	node:
	  name: burrow-1
	  data_dir: /var/lib/burrow
	scheduler:
	  partition_threads: 0        # <= 0 selects max(2, cores)
	  generic_threads: 0          # <= 0 selects max(2, cores/2)
	  termination_timeout: 3s
	  queue_capacity: 0           # 0 = unbounded
	  respawn_policy: respawn     # respawn | escalate | none
	transport:
	  listen_addr: ":5701"
	metrics:
	  listen_addr: ":9090"
	storage:
	  persistent: false
	  path: ""
	log:
	  level: info
	  json: true

Load reads and validates a file; Default returns the built-in defaults.
Worker counts are resolved lazily by PartitionWorkers/GenericWorkers so a
zero value tracks the machine the node actually starts on.
*/
package config
