package scopedio

// Terminal pass-throughs. Echo control works on Unix terminals; elsewhere
// (and on non-terminal handles) it reports [ErrUnsupported].

// IsTerminal reports whether the handle is attached to a terminal device.
func (h Handle[M]) IsTerminal() bool {
	return sysIsTerminal(h.h.fd)
}

// SetEcho enables or disables terminal input echo.
func (h Handle[M]) SetEcho(on bool) error {
	if err := sysSetEcho(h.h.fd, on); err != nil {
		return opErr(h.h.path, "echo", err)
	}

	return nil
}

// Echo reports whether terminal input echo is enabled.
func (h Handle[M]) Echo() (bool, error) {
	on, err := sysGetEcho(h.h.fd)
	if err != nil {
		return false, opErr(h.h.path, "echo", err)
	}

	return on, nil
}
