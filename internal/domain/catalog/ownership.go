package catalog

// AuthorizeMutation is the single ownership gate for update and delete. It
// returns ErrForbidden unless requesterID is the listing's owner. Like
// toggles and view counting bypass it on purpose: any authenticated actor
// may interact.
func AuthorizeMutation(p *Product, requesterID string) error {
	if requesterID == "" || p.OwnerID != requesterID {
		return ErrForbidden
	}
	return nil
}
