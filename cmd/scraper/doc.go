// Command scraper discovers torrent streams for movies and shows.
//
// One-shot commands read an item snapshot from a JSON file, while serve
// consumes scrape requests from NATS JetStream.
package main
