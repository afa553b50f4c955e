package crawler

// searchPage mimics the rendered Encar search results table
const searchPage = `<html><body>
<table class="car_list">
	<thead><tr><th>Model</th><th>Year</th><th>Price</th></tr></thead>
	<tbody>
	<tr>
		<td class="inf">
			<a class="newLink _link" href="/dc/dc_cardetailview.do?pageid=dc_carsearch&carid=101&listAdvType=pic">
				<span class="cls"><strong>현대</strong> 쏘나타</span>
				<span class="dtl">2.0 모던</span>
			</a>
			<span class="yer">19/05식</span>
			<span class="km">35,000km</span>
		</td>
		<td class="prc_hs"><strong>1,890</strong>만원</td>
	</tr>
	<tr><td class="ad">sponsored</td></tr>
	<tr>
		<td class="inf">
			<a class="newLink _link" href="/dc/dc_cardetailview.do?pageid=dc_carsearch">
				<span class="cls">broken</span>
			</a>
		</td>
	</tr>
	<tr>
		<td class="inf">
			<a class="newLink _link" href="/dc/dc_cardetailview.do?carid=102">
				<span class="cls">기아 K5</span>
			</a>
			<span class="yer">21/01식</span>
		</td>
		<td class="prc_hs"><strong>2,350</strong>만원</td>
	</tr>
	</tbody>
</table>
</body></html>`
