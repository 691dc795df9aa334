/*
Package queue provides the FIFO pair backing every dispatch worker.

Each worker owns a Blocking queue for ordinary work and a Priority queue
for urgent work. The Blocking queue is the only place a worker sleeps; the
Priority queue is drained to exhaustion before each ordinary task. Urgent
submissions therefore pair an offer to the Priority queue with a no-op
wakeup task offered to the Blocking queue, so a sleeping worker notices
the urgent arrival.

Both queues are ring-buffer backed and safe for many concurrent writers.
Capacity bounds apply only to the Blocking queue and are disabled by
default (capacity 0 = unbounded); a bounded queue rejects offers with
ErrRejected rather than blocking the producer.

Interrupt is used once, at shutdown: it wakes every blocked taker and
stays set, so workers checking their shutdown flag after Take never sleep
again.
*/
package queue
