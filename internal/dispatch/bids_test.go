package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ridebid/ridebid-backend/internal/models"
)

func TestBidLedgerKeepsSubmissionOrder(t *testing.T) {
	s := newTestService()
	ride := mustCreate(t, s)

	first, err := s.SubmitBid(ride.ID, BidInput{DriverID: "drv-1", DriverName: "Carlos", Price: 15.00, DriverPhone: "+51911111111"})
	if err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	second, err := s.SubmitBid(ride.ID, BidInput{DriverID: "drv-2", DriverName: "Maria", Price: 12.00, DriverPhone: "+51922222222"})
	if err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	// A counter-bid from the first driver is just another row.
	counter, err := s.SubmitBid(ride.ID, BidInput{DriverID: "drv-1", DriverName: "Carlos", Price: 13.50, DriverPhone: "+51911111111"})
	if err != nil {
		t.Fatalf("counter-bid: %v", err)
	}

	got, _ := s.GetRide(ride.ID)
	if len(got.Bids) != 3 {
		t.Fatalf("ledger has %d bids, want 3", len(got.Bids))
	}
	wantOrder := []string{first.ID, second.ID, counter.ID}
	for i, want := range wantOrder {
		if got.Bids[i].ID != want {
			t.Fatalf("bids[%d] = %s, want %s", i, got.Bids[i].ID, want)
		}
	}

	// Price never auto-selects: the rider may accept the higher bid.
	if _, _, err := s.AcceptBid(ride.ID, first.ID); err != nil {
		t.Fatalf("accepting the non-cheapest bid: %v", err)
	}
	final, _ := s.GetRide(ride.ID)
	if *final.AcceptedBidID != first.ID {
		t.Fatalf("acceptedBidId = %s, want %s", *final.AcceptedBidID, first.ID)
	}
}

func TestSubmitBidValidation(t *testing.T) {
	s := newTestService()
	ride := mustCreate(t, s)

	if _, err := s.SubmitBid(ride.ID, BidInput{DriverID: "", Price: 10}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty driver: got %v, want ErrInvalidInput", err)
	}
	if _, err := s.SubmitBid(ride.ID, BidInput{DriverID: "drv-1", Price: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero price: got %v, want ErrInvalidInput", err)
	}
}

func TestAcceptBidRejectsUnknownBid(t *testing.T) {
	s := newTestService()
	ride := mustCreate(t, s)
	mustBid(t, s, ride.ID, 15)

	if _, _, err := s.AcceptBid(ride.ID, "not-a-bid"); !errors.Is(err, ErrBidNotFound) {
		t.Fatalf("got %v, want ErrBidNotFound", err)
	}

	// The failed accept must not have moved the ride.
	got, _ := s.GetRide(ride.ID)
	if got.Status != models.RideStatusPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
}

func TestBidsRejectedOncePastPending(t *testing.T) {
	s := newTestService()
	ride := mustCreate(t, s)
	bid := mustBid(t, s, ride.ID, 15)

	if _, _, err := s.AcceptBid(ride.ID, bid.ID); err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}

	if _, err := s.SubmitBid(ride.ID, BidInput{DriverID: "drv-2", Price: 11}); !errors.Is(err, ErrRideNotOpen) {
		t.Fatalf("bid after accept: got %v, want ErrRideNotOpen", err)
	}
}

// Many riders racing AcceptBid on the same ride: exactly one wins, everyone
// else observes the ride as no longer open, and the winner's bid id is the
// one recorded on the ride.
func TestConcurrentAcceptBidExactlyOneWinner(t *testing.T) {
	const contenders = 32

	s := newTestService()
	ride := mustCreate(t, s)

	bidIDs := make([]string, contenders)
	for i := 0; i < contenders; i++ {
		bid, err := s.SubmitBid(ride.ID, BidInput{
			DriverID: fmt.Sprintf("drv-%d", i),
			Price:    10 + float64(i),
		})
		if err != nil {
			t.Fatalf("SubmitBid: %v", err)
		}
		bidIDs[i] = bid.ID
	}

	var (
		start   sync.WaitGroup
		done    sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losses  int
	)
	start.Add(1)
	for i := 0; i < contenders; i++ {
		done.Add(1)
		go func(bidID string) {
			defer done.Done()
			start.Wait()
			_, _, err := s.AcceptBid(ride.ID, bidID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, bidID)
			case errors.Is(err, ErrRideNotOpen):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(bidIDs[i])
	}
	start.Done()
	done.Wait()

	if len(winners) != 1 {
		t.Fatalf("%d acceptances succeeded, want exactly 1", len(winners))
	}
	if losses != contenders-1 {
		t.Fatalf("%d losers saw ErrRideNotOpen, want %d", losses, contenders-1)
	}

	got, _ := s.GetRide(ride.ID)
	if got.Status != models.RideStatusAccepted {
		t.Fatalf("status = %q, want accepted", got.Status)
	}
	if got.AcceptedBidID == nil || *got.AcceptedBidID != winners[0] {
		t.Fatalf("acceptedBidId = %v, want %s", got.AcceptedBidID, winners[0])
	}
}

// SubmitBid racing a winning AcceptBid must either land in the ledger before
// the acceptance or fail with ErrRideNotOpen; a bid is never silently lost.
func TestSubmitBidRacingAccept(t *testing.T) {
	const bidders = 16

	s := newTestService()
	ride := mustCreate(t, s)
	seed := mustBid(t, s, ride.ID, 15)

	var (
		start sync.WaitGroup
		done  sync.WaitGroup
		mu    sync.Mutex
		acked []string
	)
	start.Add(1)

	for i := 0; i < bidders; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			bid, err := s.SubmitBid(ride.ID, BidInput{
				DriverID: fmt.Sprintf("late-%d", i),
				Price:    20 + float64(i),
			})
			if err != nil {
				if !errors.Is(err, ErrRideNotOpen) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			mu.Lock()
			acked = append(acked, bid.ID)
			mu.Unlock()
		}(i)
	}

	done.Add(1)
	go func() {
		defer done.Done()
		start.Wait()
		if _, _, err := s.AcceptBid(ride.ID, seed.ID); err != nil {
			t.Errorf("AcceptBid: %v", err)
		}
	}()

	start.Done()
	done.Wait()

	got, _ := s.GetRide(ride.ID)
	inLedger := make(map[string]bool, len(got.Bids))
	for _, b := range got.Bids {
		inLedger[b.ID] = true
	}
	for _, id := range acked {
		if !inLedger[id] {
			t.Fatalf("acknowledged bid %s missing from ledger", id)
		}
	}
	if len(got.Bids) != len(acked)+1 {
		t.Fatalf("ledger has %d bids, want %d acknowledged + seed", len(got.Bids), len(acked))
	}
}
