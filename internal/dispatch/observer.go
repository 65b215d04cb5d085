package dispatch

// Observer receives scheduler lifecycle events for a job.
type Observer interface {
	// OnReserveDenied signals a reserve denial with retry metadata.
	OnReserveDenied(job Job, res ReserveResponse)
	// OnReserveError signals a reserve error before retry.
	OnReserveError(job Job, err error)
}
