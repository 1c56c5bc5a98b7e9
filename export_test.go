package xbee

// Pending reports whether the last frame returned by ReadFrame is still held.
func (d *Device) Pending() bool { return d.pending }

func (d *Device) RxCap() int { return d.rx.Cap() }
