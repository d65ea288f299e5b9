package search

import (
	"strings"

	"github.com/clinsight/trial-search/pkg/trials"
)

// page is the wire shape of one studies response.
type page struct {
	Studies       []study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
	TotalCount    int     `json:"totalCount"`
}

// study mirrors the nested upstream record. Only the paths flattened
// into a Trial are declared; everything else in the payload is ignored.
// Absent modules decode to zero values, so sparse records never fail.
type study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		DesignModule struct {
			Phases []string `json:"phases"`
		} `json:"designModule"`
		SponsorCollaboratorsModule struct {
			LeadSponsor struct {
				Name string `json:"name"`
			} `json:"leadSponsor"`
		} `json:"sponsorCollaboratorsModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		ArmsInterventionsModule struct {
			Interventions []struct {
				Name string `json:"name"`
			} `json:"interventions"`
		} `json:"armsInterventionsModule"`
	} `json:"protocolSection"`
}

// flatten extracts the seven Trial fields from the nested record.
// Missing scalars stay empty strings and missing lists stay empty
// slices; phase renders as the joined phase list or "N/A".
func (s study) flatten() trials.Trial {
	protocol := s.ProtocolSection

	phase := "N/A"
	if len(protocol.DesignModule.Phases) > 0 {
		phase = strings.Join(protocol.DesignModule.Phases, ", ")
	}

	conditions := protocol.ConditionsModule.Conditions
	if conditions == nil {
		conditions = []string{}
	}

	interventions := make([]string, 0, len(protocol.ArmsInterventionsModule.Interventions))
	for _, intervention := range protocol.ArmsInterventionsModule.Interventions {
		if intervention.Name != "" {
			interventions = append(interventions, intervention.Name)
		}
	}

	return trials.Trial{
		NCTID:         protocol.IdentificationModule.NCTID,
		Title:         protocol.IdentificationModule.BriefTitle,
		Phase:         phase,
		Status:        protocol.StatusModule.OverallStatus,
		Sponsor:       protocol.SponsorCollaboratorsModule.LeadSponsor.Name,
		Conditions:    conditions,
		Interventions: interventions,
	}
}
