package exercises

import "musicstore-sql/internal/compose"

// Percentages divide integers and therefore truncate, as the engine does.
// Money is compared and ordered after rounding to cents: the same SUM can
// differ in its last bit depending on the join order the engine picks.

func builtin() []Exercise {
	return []Exercise{
		{
			ID:     "rock-jazz-minutes-gap",
			Title:  "Rock versus Jazz running time",
			Prompt: "How many more minutes of Rock than Jazz does the catalog hold?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("rock_ms", `
						SELECT SUM(t.milliseconds) AS total_ms
						FROM track t
						JOIN genre g ON g.genre_id = t.genre_id
						WHERE g.name = 'Rock'`),
					compose.Named("jazz_ms", `
						SELECT SUM(t.milliseconds) AS total_ms
						FROM track t
						JOIN genre g ON g.genre_id = t.genre_id
						WHERE g.name = 'Jazz'`),
				},
				Final: `
					SELECT ((SELECT total_ms FROM {{rock_ms}}) - (SELECT total_ms FROM {{jazz_ms}})) / 60000 AS minutes`,
			},
		},
		{
			ID:     "average-customer-spend",
			Title:  "Average lifetime spend",
			Prompt: "What does a customer spend on average over their lifetime?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("customer_spend", `
						SELECT customer_id, SUM(total) AS lifetime_spend
						FROM invoice
						GROUP BY customer_id`),
				},
				Final: `
					SELECT ROUND(AVG(lifetime_spend), 2) AS average_spend
					FROM {{customer_spend}}`,
			},
		},
		{
			ID:     "complete-album-purchases",
			Title:  "Whole-album purchases",
			Prompt: "How many invoices bought every track of at least one album, and which albums were they?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("album_tracks", `
						SELECT album_id, COUNT(*) AS track_count
						FROM track
						GROUP BY album_id`),
					compose.Named("invoice_album_tracks", `
						SELECT il.invoice_id AS invoice_id, t.album_id AS album_id, COUNT(DISTINCT il.track_id) AS purchased
						FROM invoice_line il
						JOIN track t ON t.track_id = il.track_id
						GROUP BY il.invoice_id, t.album_id`),
				},
				Final: `
					SELECT COUNT(DISTINCT invoice_album_tracks.invoice_id) AS complete_album_purchases
					FROM {{invoice_album_tracks}}
					JOIN {{album_tracks}} ON album_tracks.album_id = invoice_album_tracks.album_id
					WHERE invoice_album_tracks.purchased = album_tracks.track_count`,
				FollowUps: []string{`
					SELECT invoice_album_tracks.invoice_id AS invoice_id, a.title AS album
					FROM {{invoice_album_tracks}}
					JOIN {{album_tracks}} ON album_tracks.album_id = invoice_album_tracks.album_id
					JOIN album a ON a.album_id = album_tracks.album_id
					WHERE invoice_album_tracks.purchased = album_tracks.track_count
					ORDER BY invoice_album_tracks.invoice_id, a.title`,
				},
			},
		},
		{
			ID:     "returning-customers-2022",
			Title:  "Customers returning after 2022",
			Prompt: "What percentage of customers who purchased in 2022 purchased again in a later year?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("buyers_2022", `
						SELECT DISTINCT customer_id
						FROM invoice
						WHERE substr(invoice_date, 1, 4) = '2022'`),
					compose.Named("later_buyers", `
						SELECT DISTINCT customer_id
						FROM invoice
						WHERE substr(invoice_date, 1, 4) > '2022'`),
				},
				Final: `
					SELECT COUNT(later_buyers.customer_id) * 100 / COUNT(*) AS returning_pct
					FROM {{buyers_2022}}
					LEFT JOIN {{later_buyers}} ON later_buyers.customer_id = buyers_2022.customer_id`,
			},
		},
		{
			ID:     "genre-revenue-ranking",
			Title:  "Genres by revenue",
			Prompt: "Rank the genres that sold at least one track by revenue.",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("genre_revenue", `
						SELECT g.name AS genre, SUM(il.unit_price * il.quantity) AS revenue
						FROM invoice_line il
						JOIN track t ON t.track_id = il.track_id
						JOIN genre g ON g.genre_id = t.genre_id
						GROUP BY g.name`),
				},
				Final: `
					SELECT genre,
						ROUND(revenue, 2) AS revenue_total,
						RANK() OVER (ORDER BY ROUND(revenue, 2) DESC) AS revenue_rank
					FROM {{genre_revenue}}
					ORDER BY revenue_rank, genre`,
			},
		},
		{
			ID:     "tracks-longer-than-average",
			Title:  "Longer than average",
			Prompt: "How many tracks run longer than the average track?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("avg_length", `
						SELECT AVG(milliseconds) AS avg_ms
						FROM track`),
				},
				Final: `
					SELECT COUNT(*) AS long_tracks
					FROM track
					WHERE milliseconds > (SELECT avg_ms FROM {{avg_length}})`,
			},
		},
		{
			ID:     "top-support-rep",
			Title:  "Best-selling support rep",
			Prompt: "Which support representative's customers spent the most?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("rep_sales", `
						SELECT e.employee_id AS employee_id, e.first_name || ' ' || e.last_name AS rep, SUM(i.total) AS sales
						FROM employee e
						JOIN customer c ON c.support_rep_id = e.employee_id
						JOIN invoice i ON i.customer_id = c.customer_id
						GROUP BY e.employee_id, e.first_name, e.last_name`),
				},
				Final: `
					SELECT rep, ROUND(sales, 2) AS total_sales
					FROM {{rep_sales}}
					WHERE ROUND(sales, 2) = (SELECT MAX(ROUND(sales, 2)) FROM {{rep_sales}})
					ORDER BY rep`,
			},
		},
		{
			ID:     "customers-above-average-spend",
			Title:  "Above-average spenders",
			Prompt: "How many customers spend more than the average customer, and who are they?",
			Question: compose.Question{
				Steps: []compose.Binding{
					compose.Named("customer_spend", `
						SELECT customer_id, SUM(total) AS lifetime_spend
						FROM invoice
						GROUP BY customer_id`),
					compose.Named("average_spend", `
						SELECT AVG(lifetime_spend) AS avg_spend
						FROM {{customer_spend}}`),
				},
				Final: `
					SELECT COUNT(*) AS customers
					FROM {{customer_spend}}
					WHERE lifetime_spend > (SELECT avg_spend FROM {{average_spend}})`,
				FollowUps: []string{`
					SELECT c.first_name || ' ' || c.last_name AS customer, ROUND(customer_spend.lifetime_spend, 2) AS spend
					FROM {{customer_spend}}
					JOIN customer c ON c.customer_id = customer_spend.customer_id
					WHERE customer_spend.lifetime_spend > (SELECT avg_spend FROM {{average_spend}})
					ORDER BY customer_spend.lifetime_spend DESC`,
				},
			},
		},
	}
}
